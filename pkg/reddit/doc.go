// Package reddit is a minimal client for the parts of the Reddit API used
// here: the script-app password grant, the saved listing and unsave.
//
// Every request goes through a ratelimit.Limiter and carries the configured
// User-Agent, which Reddit requires.
package reddit
