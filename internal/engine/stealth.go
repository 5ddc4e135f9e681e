package engine

import stealth "github.com/anatolykoptev/go-stealth"

// RandomUserAgent returns a rotating desktop browser User-Agent.
func RandomUserAgent() string { return stealth.RandomUserAgent() }
