package satchel

// Version is the satchel release version.
const Version = "0.1.0"
