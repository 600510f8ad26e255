package models

// ContextUserIDKey is the gin context key under which the auth middleware
// stores the verified requester id (uuid.UUID).
const ContextUserIDKey = "user_id"
