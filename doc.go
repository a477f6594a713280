// Package bassaes67 ties together clock discipline, RTP/AES67 transport,
// SRT and WebRTC transport, and a multiband broadcast loudness processor
// behind a single plugin-host boundary. Callers see host audio channels;
// the package owns sockets, clocks, and codecs.
package bassaes67
