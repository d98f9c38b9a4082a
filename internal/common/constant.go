// Package common contains shared constants used across ClipFeed components.
package common

// AuthorizationHeaderName is the HTTP header used to carry the access token
// on authenticated requests ("Bearer <token>").
const AuthorizationHeaderName = "Authorization"

// VideoContentType is the MIME type declared for every uploaded clip.
const VideoContentType = "video/mp4"

// AnonymousUserID is recorded on uploads performed without a session user.
const AnonymousUserID = "anonymous"
