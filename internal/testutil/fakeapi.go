package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// APITask is the JSON shape served by FakeAPI.
type APITask struct {
	ID        int64  `json:"id"`
	Titulo    string `json:"titulo"`
	Descricao string `json:"descricao"`
	Concluida bool   `json:"concluida"`
	FotoURL   string `json:"fotoUrl,omitempty"`
	FotoSenha string `json:"fotoSenha,omitempty"`
}

// FakeAPI is an in-memory http.Handler serving the /api/tarefas REST API.
// Photo passphrases are stored bcrypt-hashed, as the real server does.
type FakeAPI struct {
	mu     sync.Mutex
	tasks  []APITask
	nextID int64
	photos map[string][]byte // filename -> content
	fail   map[string]int    // method -> status to answer with
	mux    *http.ServeMux
	auth   string // Authorization header of the latest request
}

// NewFakeAPI creates an empty FakeAPI. IDs start at 1.
func NewFakeAPI() *FakeAPI {
	a := &FakeAPI{
		nextID: 1,
		photos: make(map[string][]byte),
		fail:   make(map[string]int),
		mux:    http.NewServeMux(),
	}
	a.mux.HandleFunc("GET /api/tarefas", a.handleList)
	a.mux.HandleFunc("POST /api/tarefas", a.handleCreate)
	a.mux.HandleFunc("PUT /api/tarefas/{id}", a.handleReplace)
	a.mux.HandleFunc("DELETE /api/tarefas/{id}", a.handleDelete)
	a.mux.HandleFunc("GET /api/tarefas/uploads/{filename}", a.handlePhoto)
	return a
}

// ServeHTTP implements http.Handler.
func (a *FakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.auth = r.Header.Get("Authorization")
	status, failing := a.fail[r.Method]
	a.mu.Unlock()

	if failing {
		writeJSON(w, status, map[string]any{"status": status, "error": http.StatusText(status)})
		return
	}
	a.mux.ServeHTTP(w, r)
}

// Fail makes every request with the given method answer with status.
func (a *FakeAPI) Fail(method string, status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fail[method] = status
}

// LastAuthorization returns the Authorization header of the latest request.
func (a *FakeAPI) LastAuthorization() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.auth
}

// AddTask stores a task and returns it.
func (a *FakeAPI) AddTask(titulo, descricao string, concluida bool) APITask {
	a.mu.Lock()
	defer a.mu.Unlock()
	t := APITask{ID: a.nextID, Titulo: titulo, Descricao: descricao, Concluida: concluida}
	a.nextID++
	a.tasks = append(a.tasks, t)
	return t
}

// Tasks returns a copy of the stored tasks.
func (a *FakeAPI) Tasks() []APITask {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.tasks)
}

func (a *FakeAPI) handleList(w http.ResponseWriter, r *http.Request) {
	tasks := a.Tasks()
	if tasks == nil {
		tasks = []APITask{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (a *FakeAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t := APITask{}
	if !a.applyForm(w, r, &t) {
		return
	}
	t.ID = a.nextID
	a.nextID++
	a.tasks = append(a.tasks, t)
	writeJSON(w, http.StatusCreated, t)
}

func (a *FakeAPI) handleReplace(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.indexLocked(r.PathValue("id"))
	if i < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	t := a.tasks[i]
	if !a.applyForm(w, r, &t) {
		return
	}
	a.tasks[i] = t
	writeJSON(w, http.StatusCreated, t)
}

func (a *FakeAPI) handleDelete(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.indexLocked(r.PathValue("id"))
	if i < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	a.tasks = slices.Delete(a.tasks, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

func (a *FakeAPI) handlePhoto(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	filename := r.PathValue("filename")
	content, ok := a.photos[filename]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	for _, t := range a.tasks {
		if t.FotoURL != "/uploads/"+filename {
			continue
		}
		if t.FotoSenha != "" {
			pass := r.URL.Query().Get("fotoSenha")
			if pass == "" || bcrypt.CompareHashAndPassword([]byte(t.FotoSenha), []byte(pass)) != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(content)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

// applyForm copies the multipart form onto t. Writes an error response and
// returns false if the form is invalid.
func (a *FakeAPI) applyForm(w http.ResponseWriter, r *http.Request, t *APITask) bool {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		return false
	}
	titulo, descricao := r.FormValue("titulo"), r.FormValue("descricao")
	if titulo == "" || descricao == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": 400, "error": "Bad Request"})
		return false
	}
	t.Titulo = titulo
	t.Descricao = descricao
	if v := r.FormValue("concluida"); v != "" {
		t.Concluida, _ = strconv.ParseBool(v)
	}

	if file, header, err := r.FormFile("foto"); err == nil {
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return false
		}
		name := filepath.Base(header.Filename)
		a.photos[name] = content
		t.FotoURL = "/uploads/" + name
	}

	if pass := r.FormValue("fotoSenha"); pass != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.MinCost)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return false
		}
		t.FotoSenha = string(hash)
	}
	return true
}

func (a *FakeAPI) indexLocked(rawID string) int {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return -1
	}
	return slices.IndexFunc(a.tasks, func(t APITask) bool { return t.ID == id })
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
