package types

// Recipe is a generated recipe. Image is attached after generation and stays
// empty when the image call failed.
type Recipe struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
	Image        string `json:"image,omitempty"`
}
