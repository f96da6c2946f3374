// Package environment names the deployment environment the validator runs in
// and carries it through request contexts.
//
// Parse normalises the APP_ENV value (accepting the short aliases "dev",
// "stage" and "prod"). Middleware stores the environment on every request so
// handlers can decide, for example, whether internal error details may be
// shown to the caller.
//
//	env := environment.Parse(cfg.AppEnv)
//	r.Use(environment.Middleware(env))
//
//	if environment.IsProduction(ctx) {
//	    // hide internals
//	}
package environment
