package di

import "context"

// provideContext supplies the root context for clients created at
// startup (Firestore, GCS). Their requests carry their own contexts.
func provideContext() context.Context {
	return context.Background()
}
