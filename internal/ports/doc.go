// Package ports defines the interfaces (ports) that connect the history state
// machine to the host environment.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from the browser and the router without specifying how
// those needs are fulfilled.
//
// # Port Interfaces
//
//   - [Storage]: session-scoped key/value storage for the reload backup
//   - [NativeHistory]: per-entry state of the native history and its pop events
//   - [UnloadNotifier]: the "page is about to unload" signal
//   - [Logger]: structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with a file
// store, an in-memory simulated browser and zerolog.
package ports
