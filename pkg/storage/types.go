package storage

import (
	"fmt"
	"path"
	"time"
)

type DiskStorage struct {
	Country    string
	RootFolder string
}

func NewDiskStorage(country, rootFolder string) *DiskStorage {
	return &DiskStorage{
		Country:    country,
		RootFolder: rootFolder,
	}
}

// GetFileName returns the path of name and a temporary path to write it
// through.
func (ds *DiskStorage) GetFileName(name string) (string, string) {
	fileName := path.Join(ds.RootFolder, ds.Country, name)
	tmpFileName := fileName + ".tmp-" + fmt.Sprintf("%d", time.Now().UnixMilli())
	return fileName, tmpFileName
}

// FacetSetting configures one refinement list on the page.
type FacetSetting struct {
	Name     string   `json:"name"`
	Title    string   `json:"title,omitempty"`
	Operator string   `json:"operator,omitempty"`
	Limit    int      `json:"limit,omitempty"`
	SortBy   []string `json:"sortBy,omitempty"`
}
