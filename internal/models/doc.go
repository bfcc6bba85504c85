// package models defines the data model for the song game import pipeline.
//
// A Playlist is imported from a source catalog (Spotify) and its Tracks are
// reconciled against the target catalog (Apple Music) that serves playback.
// Denormalized per-playlist counts make resolution progress observable while
// the pipeline is still running.
package models
