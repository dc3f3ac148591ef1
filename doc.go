// Package obsipc implements a call-oriented IPC protocol between a
// media engine and its clients.
//
// A server exposes named collections of functions. Each function has
// a fixed [Signature] that lists the kinds of its arguments, and a
// [HandlerFunc] that produces the reply. Collections are assembled
// once into an immutable [Registry], and a [Dispatcher] routes
// incoming calls to them: calls to unknown functions and calls whose
// arguments don't match the signature are rejected with a
// [*CallError] without invoking any handler.
//
// Arguments and replies are lists of [Value], a tagged union of a
// small fixed set of wire types. Every reply starts with a UInt64
// [Status]. Failed calls follow the status with a String message and
// carry no payload; successful calls follow it with the payload. Use
// [Reply] to build replies in a handler, and [ParseResult] to take
// them apart on the client.
//
// # Wire format
//
// Everything is little-endian. Values are encoded as a kind byte
// followed by the kind's payload: nothing for Null, the fixed-width
// number for numeric kinds, and a uint32 length plus bytes for String
// and Binary.
//
// Messages travel in frames of a uint32 length and a payload of at
// most [transport.MaxFrameSize] bytes. A message starts with a type
// byte (1 call, 2 reply, 3 error) and a uint64 call ID chosen by the
// client. Calls continue with the collection name, the function name
// and the argument list; replies with the reply values; errors with
// the error name and a detail string.
//
// # Serving
//
// [Server] accepts connections from a [transport.Listener] and serves
// calls on each with a shared [Dispatcher]. The Dispatcher runs one
// handler at a time, so handlers observe a single consistent view of
// the resources they manage.
//
// # Calling
//
// [Dial] connects to a server and returns a [Conn]. Calls on a Conn
// may be issued concurrently, and are matched to their replies by
// call ID.
package obsipc
