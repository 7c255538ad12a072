// Package storage owns the connection to the persistent store and gates the
// rest of the process on it.
//
// A Gate performs exactly one connection attempt through a Connector chosen
// from the storage URL scheme:
//
//   - mongodb://, mongodb+srv://  MongoDB via the official driver
//   - badger://<dir>, badger://memory  embedded Badger store
//
// The listener may only bind once the Gate reports Connected. There is no
// retry: an Errored gate stays errored and the process exits.
package storage
