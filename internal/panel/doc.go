// Package panel implements the discovery and deployment pipeline against
// the hosting provider's control panel: authentication (password + TOTP),
// single-sign-on handoff into the web and mail hosting subsystems,
// resolution of the internal identifiers those subsystems use (host ids,
// per-domain numeric ids, mail account id), and the multi-target
// certificate rollout.
//
// The panel offers no API; everything here drives the administration UI
// through the browser.Page capability set. Identifiers needed by later
// stages exist only as side effects of earlier UI interactions (SSO
// redirect hostnames, an embedded bootstrap payload), so the pipeline
// threads an explicit ResolvedTargets value from stage to stage instead
// of any shared state. Every run rediscovers everything from scratch.
//
// Stage order is fixed: Authenticator.Login, Resolver.Resolve,
// Deployer.Deploy, sequenced once by Runner.Run. Every stage error is
// fatal to the run; nothing retries, because the failure modes (wrong
// credential, stale UI structure, absent row) do not self-resolve on
// immediate repetition.
package panel
