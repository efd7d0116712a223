package common

// AuthHeaderScheme is the scheme marker expected in front of the raw token
// in the Authorization header. The trailing space is part of the prefix;
// token validation strips exactly len(AuthHeaderScheme) characters.
const AuthHeaderScheme = "Bearer "

// DeletedUserName replaces the name of a soft-deleted account.
const DeletedUserName = "(deleted)"
