package assets

import "time"

// Observer receives resolution events. Implementations must be safe for
// concurrent use.
type Observer interface {
	// ManifestLoaded is called once per manifest path, when the store
	// populates its cache. entries is zero for a missing manifest; err is set
	// when the manifest existed but could not be read or parsed.
	ManifestLoaded(origin, path string, entries int, err error, took time.Duration)

	// Lookup is called for every resolution, with hit reporting whether the
	// manifest rewrote the request.
	Lookup(origin string, hit bool)
}

type nopObserver struct{}

func (nopObserver) ManifestLoaded(string, string, int, error, time.Duration) {}
func (nopObserver) Lookup(string, bool)                                       {}

// Observers fans events out to several observers.
type Observers []Observer

func (o Observers) ManifestLoaded(origin, path string, entries int, err error, took time.Duration) {
	for _, obs := range o {
		obs.ManifestLoaded(origin, path, entries, err, took)
	}
}

func (o Observers) Lookup(origin string, hit bool) {
	for _, obs := range o {
		obs.Lookup(origin, hit)
	}
}
