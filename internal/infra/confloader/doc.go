// Package confloader provides the configuration loading mechanism.
//
// It uses koanf to merge multiple sources into one typed struct:
//
//  1. Default values (pre-populated target struct)
//  2. Configuration file (YAML)
//  3. Dotenv file (copied into the process environment, never overriding it)
//  4. Environment variables, bound by explicit name
//
// Environment variables are not derived from key paths. Each recognized
// variable is bound to a key through an explicit table, so conventional
// names such as PORT or MONGO_CONNECTION_URL keep working.
//
// A Watcher built on fsnotify reports changes of the configuration file so
// that reloadable settings can be applied at runtime.
package confloader
