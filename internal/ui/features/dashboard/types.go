// Package dashboard exposes the sync session over the gateway's JSON
// API: snapshot reads, item and folder mutations, bundle hydration,
// stats and figure resolution.
package dashboard

// addItemRequest creates a new saved query.
type addItemRequest struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	FolderID string `json:"folderId"`
}

// moveItemRequest reassigns an item's folder.
type moveItemRequest struct {
	FolderID string `json:"folderId"`
}

// deleteItemsRequest removes one or more items.
type deleteItemsRequest struct {
	IDs []string `json:"ids"`
}

// folderRequest creates or renames a folder.
type folderRequest struct {
	Name string `json:"name"`
}

// bundlesRequest hydrates heavy payloads for the listed items.
type bundlesRequest struct {
	IDs []string `json:"ids"`
}
