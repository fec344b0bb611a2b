// Package server exposes the beat table over HTTP for the tapping UI.
//
// Routes:
//
//	GET  /                  embedded UI
//	GET  /api/scenes        scene list in column order
//	GET  /api/beats         {headers, rows} projection of the table
//	POST /api/beats         {scene, time} appends one beat
//	GET  /api/wav-files     media files available for playback
//	GET  /api/audio/{name}  streams one media file (Range supported)
//
// A missing scene list is reported as empty collections on the GET routes
// and as a 500 carrying the CONFIG_MISSING code on POST.
package server
