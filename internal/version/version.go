package version

// Version is the application version reported by the health endpoint.
const Version = "2.0.0"
