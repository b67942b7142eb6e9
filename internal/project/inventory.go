package project

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/PatchWall/internal/model"
)

// DefaultDir returns the directory holding PatchWall data files, ~/.patchwall.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".patchwall")
}

// DefaultInventoryPath returns the default file path for the inventory file.
func DefaultInventoryPath() string {
	return filepath.Join(DefaultDir(), "inventory.json")
}

// SaveInventory writes the inventory to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveInventory(path string, inv *model.Inventory) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadInventory reads the inventory from the specified JSON file.
// A missing file yields an empty inventory.
func LoadInventory(path string) (*model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewInventory(), nil
		}
		return nil, err
	}
	inv := model.NewInventory()
	if err := json.Unmarshal(data, inv); err != nil {
		return nil, fmt.Errorf("parsing inventory %s: %w", path, err)
	}
	if inv.UserAdded == nil {
		inv.UserAdded = []model.Panel{}
	}
	if inv.Discovered == nil {
		inv.Discovered = []model.Panel{}
	}
	return inv, nil
}

// ImportInventory merges the inventory stored at path into existing.
// Panels whose ID is already present are skipped.
func ImportInventory(path string, existing *model.Inventory) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var imported model.Inventory
	if err := json.Unmarshal(data, &imported); err != nil {
		return 0, fmt.Errorf("parsing inventory %s: %w", path, err)
	}

	added := 0
	for _, p := range imported.UserAdded {
		if existing.FindByID(p.ID) == nil {
			existing.AddUserStock(p.Unplaced())
			added++
		}
	}
	for _, p := range imported.Discovered {
		if existing.FindByID(p.ID) == nil {
			existing.Discovered = append(existing.Discovered, p.Unplaced())
			added++
		}
	}
	return added, nil
}

// FileStore keeps the inventory in a single JSON file.
type FileStore struct {
	Path string
}

// NewFileStore returns a store for path, or for DefaultInventoryPath when path is empty.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultInventoryPath()
	}
	return &FileStore{Path: path}
}

func (s *FileStore) Load(_ context.Context) (*model.Inventory, error) {
	return LoadInventory(s.Path)
}

func (s *FileStore) Save(_ context.Context, inv *model.Inventory) error {
	return SaveInventory(s.Path, inv)
}

func (s *FileStore) Close() error { return nil }
