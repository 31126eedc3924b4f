package storage

import (
	"compress/gzip"
	"errors"
	"io"
	"log"
	"os"
	"path"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-refine/pkg/facet"
)

const itemsFile = "items.jz"
const facetsFile = "facets.json"

func (d *DiskStorage) LoadFacets(output *[]FacetSetting) error {
	return d.LoadJson(output, facetsFile)
}

func (d *DiskStorage) SaveFacets(facets []FacetSetting) error {
	return d.SaveJson(facets, facetsFile)
}

// LoadItems streams the gzipped item file into idx.
func (d *DiskStorage) LoadItems(idx *facet.Index) (int, error) {
	fileName, _ := d.GetFileName(itemsFile)
	file, err := os.Open(fileName)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	zipReader, err := gzip.NewReader(file)
	if err != nil {
		return 0, err
	}
	defer zipReader.Close()

	decoder := sonic.ConfigDefault.NewDecoder(zipReader)
	loaded := 0
	for {
		tmp := &facet.Item{}
		if err = decoder.Decode(tmp); err != nil {
			break
		}
		idx.UpsertItem(tmp)
		loaded++
	}
	if errors.Is(err, io.EOF) {
		return loaded, nil
	}
	return loaded, err
}

func (d *DiskStorage) SaveItems(items []*facet.Item) error {
	fileName, tmpFileName := d.GetFileName(itemsFile)
	if err := d.ensureFolder(); err != nil {
		return err
	}
	file, err := os.Create(tmpFileName)
	if err != nil {
		return err
	}

	zipWriter := gzip.NewWriter(file)
	enc := sonic.ConfigDefault.NewEncoder(zipWriter)
	for _, item := range items {
		if err = enc.Encode(item); err != nil {
			break
		}
	}
	if cerr := zipWriter.Close(); err == nil {
		err = cerr
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpFileName)
		return err
	}
	log.Printf("saved %d items to %s", len(items), fileName)
	return os.Rename(tmpFileName, fileName)
}

func (d *DiskStorage) ensureFolder() error {
	return os.MkdirAll(path.Join(d.RootFolder, d.Country), 0o755)
}

func (d *DiskStorage) SaveJson(data any, name string) error {
	fileName, tmpFileName := d.GetFileName(name)
	if err := d.ensureFolder(); err != nil {
		return err
	}
	b, err := sonic.ConfigStd.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err = os.WriteFile(tmpFileName, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpFileName, fileName)
}

func (d *DiskStorage) LoadJson(data any, name string) error {
	fileName, _ := d.GetFileName(name)
	b, err := os.ReadFile(fileName)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(b, data)
}
