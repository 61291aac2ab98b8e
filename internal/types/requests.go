package types

// SearchRequest is the body of POST /search
type SearchRequest struct {
	Ingredients string   `json:"ingredients"`
	Cuisines    []string `json:"cuisines"`
}

// SearchResponse is returned by a successful search.
type SearchResponse struct {
	Recipes     []Recipe `json:"recipes"`
	SearchCount int64    `json:"searchCount"`
}

// GenerateImageRequest is the body of POST /generate-image
type GenerateImageRequest struct {
	RecipeName string `json:"recipeName"`
}

type GenerateImageResponse struct {
	ImageURL string `json:"imageUrl"`
}

// CredentialsRequest carries local provider credentials.
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// UsageResponse reports the caller's quota consumption. FreeSearches and
// Remaining are omitted when searches are unlimited.
type UsageResponse struct {
	Email        string `json:"email"`
	SearchCount  int64  `json:"searchCount"`
	FreeSearches int64  `json:"freeSearches,omitempty"`
	Remaining    *int64 `json:"remaining,omitempty"`
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
