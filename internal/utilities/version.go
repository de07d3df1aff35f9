package utilities

// Version is git commit or release tag from which this binary was built.
var Version string
