package stash

// Version is the current release, overridable at build time with
// -ldflags "-X github.com/stanza-editor/stash.Version=...".
var Version = "0.1.0-dev"
