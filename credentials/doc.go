/*
Package credentials supplies access credentials to the s3kit signing pipeline.

A Provider is anything that can produce a credential snapshot:

	type Provider interface {
	    Retrieve(ctx context.Context) (Value, error)
	}

Providers are composable.  NewStatic wraps fixed keys, NewEnv reads the
process environment, NewFile reads a shared AWS credentials file, and
NewChain tries a list of providers in order, returning the first snapshot
that resolves.  NewCache wraps any provider with expiry-aware caching so
concurrent signings observe one refresh rather than N.

	provider := credentials.NewChain(
	    credentials.NewEnv(),
	    credentials.NewFile("", "default"),
	)
	client, err := s3kit.New("play.min.io", s3kit.WithCredentials(credentials.NewCache(provider)))
*/
package credentials
