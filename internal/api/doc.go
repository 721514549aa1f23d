// Package api provides the HTTP REST API and WebSocket server for the
// Gray Logic toolkit.
//
// It exposes the device settings, the service registry and the conversion
// tools (value remapping, ANSI to HTML) to the web admin. Setting changes
// are pushed to WebSocket clients subscribed to "setting.changed".
//
// The server takes its collaborators from a service registry:
//
//	services := registry.New()
//	registry.AddAs(services, "", settingsService)
//	registry.AddAs[auth.UserRepository](services, "", userRepo)
//
//	server, err := api.New(api.Deps{Services: services, ...})
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
