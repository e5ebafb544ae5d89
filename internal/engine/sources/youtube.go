package sources

// YouTube implementation is split across files by responsibility:
//   youtube_resolve.go    — video ID resolution from URLs and bare IDs
//   youtube_innertube.go  — Innertube API types, constants, and low-level HTTP primitives
//   youtube_player.go     — metadata and caption tracks via /player (watch + embed clients)
//   youtube_ytdlp.go      — metadata via the yt-dlp executable
//   youtube_captions.go   — caption download and json3/XML payload parsing
//   youtube_comments.go   — lazy comment stream via /next continuations
