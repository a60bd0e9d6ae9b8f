// Package vecstore talks to Pinecone over its REST API. The Client type
// covers the raw control-plane and data-plane endpoints; VectorStore layers
// collection-to-namespace mapping and dimension checks on top of it.
package vecstore
