// Package playback owns the viewer-side playback session: exactly one
// player instance bound to one stream, kept consistent with observed
// status and torn down explicitly. It has no UI framework dependency;
// the same controller runs headless or behind a view.
package playback

// Player is the media player abstraction the controller drives. One
// controller owns at most one Player at a time.
type Player interface {
	// Load points the player at a manifest URL and begins buffering.
	Load(src string) error
	// Play starts or resumes playback of the loaded source.
	Play() error
	// Reset blanks the source so the player stops fetching a dead
	// stream. The instance stays usable for a later Load.
	Reset()
	// CurrentTime reports the playback position in seconds; zero means
	// playback never advanced.
	CurrentTime() float64
	// Seek jumps to a position in seconds.
	Seek(pos float64)
	// Dispose releases the player. No calls may follow.
	Dispose()
}
