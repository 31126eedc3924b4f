package main

import (
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-refine/pkg/facet"
	ffSync "github.com/matst80/slask-refine/pkg/sync"
)

type WriterApp struct {
	sender ChangeSender
}

func (app *WriterApp) handleItems(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var items []*facet.Item
	if err = sonic.Unmarshal(body, &items); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(items) == 0 {
		http.Error(w, "no items", http.StatusBadRequest)
		return
	}
	if err = app.sender.SendChange(&ffSync.ItemChange{Upserted: items}); err != nil {
		log.Printf("failed to send items: %v", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	log.Printf("sent %d items", len(items))
	w.WriteHeader(http.StatusAccepted)
}

func (app *WriterApp) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err = app.sender.SendChange(&ffSync.ItemChange{Deleted: []uint32{uint32(id)}}); err != nil {
		log.Printf("failed to send delete: %v", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (app *WriterApp) Handler() *http.ServeMux {
	srv := http.NewServeMux()
	srv.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	srv.HandleFunc("POST /admin/items", app.handleItems)
	srv.HandleFunc("DELETE /admin/item/{id}", app.deleteItem)
	return srv
}
