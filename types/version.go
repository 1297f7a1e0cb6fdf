package types

// Version is the canonical project version.
// The CLI, the frame format, and the storage record layout share this version.
const Version = "0.3.0"
