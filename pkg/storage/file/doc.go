// Package file provides a Storage backend persisted to a single YAML
// document on disk. Mutations rewrite the document atomically, and an
// optional fsnotify watcher picks up external edits, reloading the policy
// set and notifying subscribed listeners.
package file
