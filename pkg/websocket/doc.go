// Package websocket implements the HTTP upgrade handshake and the
// restricted binary frame format the debugger transport runs over.
//
// This is deliberately not a general-purpose RFC 6455 client or server:
// the debugger protocol only ever sends unfragmented binary frames with
// payloads of 125 bytes or fewer, so the framing here has no extended
// length fields and no continuation frames. pkg/dbgproto is responsible
// for splitting any logical message larger than one frame's payload
// across multiple frames; this package only knows how to wrap and unwrap
// a single frame.
//
// # Handshake
//
// ParseUpgradeRequest scans a buffered HTTP request for the literal
// "/jerry-debugger" path, the Sec-WebSocket-Key header, and the optional
// ClientVersionHeader, AcceptKey computes the matching
// Sec-WebSocket-Accept value, and BuildSwitchingProtocolsResponse renders
// the 101 response that completes the upgrade.
package websocket

/*
   Restricted frame format:

   0                   1
   0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5
  +-+-+-+-+-------+-+-------------+
  |F|R|R|R| opcode|M| Payload len |
  |I|S|S|S|  (4)  |A|     (7)     |
  |N|V|V|V|       |S|  (<= 125)   |
  | |1|2|3|       |K|             |
  +-+-+-+-+-------+-+-------------+
  | Masking-key, if MASK set (4B) |
  +--------------------------------
  |         Payload Data          |
  +--------------------------------

   FIN is always 1: this transport never fragments a frame. Extended
   length (length == 126 or 127) is never used since no frame payload
   exceeds 125 bytes.
*/
