// Package knowledge implements the game knowledge retrieval pipeline:
// chunking extracted text, generating embeddings, storing them in per-game
// per-content-type vector collections, and serving nearest-neighbor search
// over them.
//
// The public surface is Service, which composes a manifest source, an
// embedder, and the vector store. Every Service operation degrades to a safe
// default instead of propagating errors; the consuming chat flow must always
// get some answer even when retrieval is broken.
package knowledge
