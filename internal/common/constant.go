package common

// TokenHeaderName is the HTTP header carrying the session token on
// authenticated requests.
const TokenHeaderName = "X-Token"

// RootParentID marks a file that lives at the top of its owner's tree.
const RootParentID = "0"
