package repos

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"courtside/internal/domain"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateProduct = errors.New("product id already exists")
)

// ProductRepo keeps the catalog in one JSON file. Writes replace the file atomically;
// the lock only covers this process.
type ProductRepo struct {
	path string
	mu   sync.RWMutex
	now  func() time.Time
}

func NewProductRepo(path string) (*ProductRepo, error) {
	r := &ProductRepo{path: path, now: time.Now}
	if err := r.ensureFile(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ProductRepo) ensureFile() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	return r.write(domain.CatalogFile{})
}

// Load returns the whole file.
func (r *ProductRepo) Load() (domain.CatalogFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.read()
}

func (r *ProductRepo) List() ([]domain.Product, error) {
	f, err := r.Load()
	return f.Products, err
}

func (r *ProductRepo) Get(id int64) (domain.Product, error) {
	f, err := r.Load()
	if err != nil {
		return domain.Product{}, err
	}
	i := indexOf(f.Products, id)
	if i < 0 {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	return f.Products[i], nil
}

// Create appends p. A zero id is replaced by the current Unix millisecond, bumped until
// unique; a missing createdAt is set to now.
func (r *ProductRepo) Create(p domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.read()
	if err != nil {
		return p, err
	}
	now := r.now()
	if p.ID == 0 {
		p.ID = now.UnixMilli()
		for indexOf(f.Products, p.ID) >= 0 {
			p.ID++
		}
	} else if indexOf(f.Products, p.ID) >= 0 {
		return p, fmt.Errorf("product %d: %w", p.ID, ErrDuplicateProduct)
	}
	if p.CreatedAt == "" {
		p.CreatedAt = now.UTC().Format(time.RFC3339)
	}
	f.Products = append(f.Products, p)
	return p, r.write(f)
}

// Update replaces the product with p.ID.
func (r *ProductRepo) Update(p domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.read()
	if err != nil {
		return p, err
	}
	i := indexOf(f.Products, p.ID)
	if i < 0 {
		return p, fmt.Errorf("product %d: %w", p.ID, ErrProductNotFound)
	}
	if p.CreatedAt == "" {
		p.CreatedAt = f.Products[i].CreatedAt
	}
	f.Products[i] = p
	return p, r.write(f)
}

// Delete removes the product with id; a missing id is not an error.
func (r *ProductRepo) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.read()
	if err != nil {
		return err
	}
	i := indexOf(f.Products, id)
	if i < 0 {
		return nil
	}
	f.Products = slices.Delete(f.Products, i, i+1)
	return r.write(f)
}

func (r *ProductRepo) read() (domain.CatalogFile, error) {
	var f domain.CatalogFile
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return f, fmt.Errorf("read %s: %w", r.path, err)
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return f, fmt.Errorf("parse %s: %w", r.path, err)
	}
	if f.Products == nil {
		f.Products = []domain.Product{}
	}
	return f, nil
}

func (r *ProductRepo) write(f domain.CatalogFile) error {
	if f.Products == nil {
		f.Products = []domain.Product{}
	}
	if f.Sizes == nil {
		f.Sizes = []int{}
	}
	if f.CourtTypes == nil {
		f.CourtTypes = []string{}
	}
	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".products-*.json")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(append(raw, '\n')); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}

func indexOf(products []domain.Product, id int64) int {
	return slices.IndexFunc(products, func(p domain.Product) bool { return p.ID == id })
}
