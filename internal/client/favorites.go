package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/headcookai/headcook/internal/types"
)

// Favorites is the list of saved recipes, kept in a JSON file and written on
// every change. Recipes are unique by name.
type Favorites struct {
	path string

	mu    sync.Mutex
	items []types.Recipe
}

// LoadFavorites reads the favorites file. A missing file is an empty list.
func LoadFavorites(path string) (*Favorites, error) {
	items, err := readRecipes(path)
	if err != nil {
		return nil, err
	}
	return &Favorites{path: path, items: items}, nil
}

// List returns a copy of the saved recipes in the order they were added
func (f *Favorites) List() []types.Recipe {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.Recipe(nil), f.items...)
}

// Add saves recipe unless one with the same name exists. It reports whether
// the list changed.
func (f *Favorites) Add(recipe types.Recipe) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.indexLocked(recipe.Name) >= 0 {
		return false, nil
	}
	items := append(append([]types.Recipe(nil), f.items...), recipe)
	if err := writeRecipes(f.path, items); err != nil {
		return false, err
	}
	f.items = items
	return true, nil
}

// Remove deletes the recipe called name. It reports whether the list changed.
func (f *Favorites) Remove(name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexLocked(name)
	if i < 0 {
		return false, nil
	}
	items := make([]types.Recipe, 0, len(f.items)-1)
	items = append(items, f.items[:i]...)
	items = append(items, f.items[i+1:]...)
	if err := writeRecipes(f.path, items); err != nil {
		return false, err
	}
	f.items = items
	return true, nil
}

func (f *Favorites) indexLocked(name string) int {
	for i, r := range f.items {
		if r.Name == name {
			return i
		}
	}
	return -1
}

// SaveLastResults stores the recipes of the latest search
func SaveLastResults(path string, recipes []types.Recipe) error {
	return writeRecipes(path, recipes)
}

// LoadLastResults returns the recipes stored by SaveLastResults
func LoadLastResults(path string) ([]types.Recipe, error) {
	return readRecipes(path)
}

func readRecipes(path string) ([]types.Recipe, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var recipes []types.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return recipes, nil
}

func writeRecipes(path string, recipes []types.Recipe) error {
	if recipes == nil {
		recipes = []types.Recipe{}
	}
	data, err := json.MarshalIndent(recipes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode recipes: %w", err)
	}
	return writeFileAtomic(path, data, 0o600)
}

// writeFileAtomic replaces path so readers never see a partial file
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
