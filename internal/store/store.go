// Package store provides the document-store client crewdeck keeps all
// persistent state in. Collections hold JSON documents addressed by
// store-assigned IDs; readers follow a collection through a live
// subscription that delivers full replacement snapshots.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("store closed")
)

// Document is one record of a collection snapshot. Data is the raw
// JSON document body, including its "id" field.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Decode unmarshals the document body into v.
func (d Document) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

// CancelFunc tears down a subscription. Safe to call more than once.
type CancelFunc func()

// Client is the document-store surface the rest of crewdeck consumes.
// Implementations must deliver snapshots in emission order, each fully
// superseding the previous one. There is no ordering guarantee between
// a local write and the next snapshot arrival.
type Client interface {
	// Get decodes the document with the given ID into v. Returns
	// ErrNotFound if it does not exist.
	Get(ctx context.Context, collection, id string, v any) error

	// Create stores v as a new document and returns the assigned ID.
	// The ID is also written into the document body's "id" field.
	Create(ctx context.Context, collection string, v any) (string, error)

	// Set stores v as the full document body for the given ID,
	// creating it if absent.
	Set(ctx context.Context, collection, id string, v any) error

	// Update merges the given fields into an existing document.
	// Returns ErrNotFound if the document does not exist.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// Delete removes the document. Deleting an absent document is not
	// an error.
	Delete(ctx context.Context, collection, id string) error

	// Subscribe opens a live subscription on a collection. onSnapshot
	// receives the full current contents immediately and again after
	// every change; onError receives subscription failures. Neither
	// callback is invoked after cancel returns.
	Subscribe(collection string, onSnapshot func([]Document), onError func(error)) (CancelFunc, error)
}

// CollectionPath builds the namespaced path for a collection under a
// deployment's app ID: artifacts/<appID>/public/data/<name>.
func CollectionPath(appID, name string) string {
	return "artifacts/" + appID + "/public/data/" + name
}

// Paths bundles the two collection paths for one deployment.
type Paths struct {
	Users  string
	Skills string
}

// PathsFor returns the collection paths for the given app ID.
func PathsFor(appID string) Paths {
	return Paths{
		Users:  CollectionPath(appID, "users"),
		Skills: CollectionPath(appID, "skills"),
	}
}

// encodeBody marshals v to a JSON object and stamps the document ID
// into its "id" field, so that decoded records carry their identity.
func encodeBody(v any, id string) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	idJSON, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}
	body["id"] = idJSON
	return json.Marshal(body)
}

// mergeBody applies a partial update to an existing document body.
func mergeBody(existing json.RawMessage, fields map[string]any) (json.RawMessage, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(existing, &body); err != nil {
		return nil, err
	}
	for key, value := range fields {
		data, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		body[key] = data
	}
	return json.Marshal(body)
}
