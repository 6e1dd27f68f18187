package repository

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/locvowork/spreadsheets/internal/domain"
)

type memoryFileReferenceRepository struct {
	mu      sync.RWMutex
	refs    map[int64]domain.FileReference
	nextUID int64
}

// NewMemoryFileReferenceRepository keeps references in process memory.
func NewMemoryFileReferenceRepository(refs ...domain.FileReference) domain.FileReferenceRepository {
	r := &memoryFileReferenceRepository{refs: make(map[int64]domain.FileReference)}
	for _, ref := range refs {
		ref := ref
		_ = r.Save(context.Background(), &ref)
	}
	return r
}

func (r *memoryFileReferenceRepository) GetByUID(ctx context.Context, uid int64) (*domain.FileReference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ref, ok := r.refs[uid]
	if !ok {
		return nil, domain.ErrFileReferenceNotFound
	}
	return &ref, nil
}

func (r *memoryFileReferenceRepository) ListByRecord(ctx context.Context, tableName, fieldName string, recordUID int64) ([]domain.FileReference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.FileReference
	for _, ref := range r.refs {
		if ref.TableName == tableName && ref.FieldName == fieldName && ref.RecordUID == recordUID {
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sorting != out[j].Sorting {
			return out[i].Sorting < out[j].Sorting
		}
		return out[i].UID < out[j].UID
	})
	return out, nil
}

func (r *memoryFileReferenceRepository) Save(ctx context.Context, ref *domain.FileReference) error {
	if ref == nil || ref.Identifier == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if ref.UID == 0 {
		r.nextUID++
		ref.UID = r.nextUID
	} else if ref.UID > r.nextUID {
		r.nextUID = ref.UID
	}
	if existing, ok := r.refs[ref.UID]; ok {
		ref.CreatedAt = existing.CreatedAt
	} else if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now()
	}
	r.refs[ref.UID] = *ref
	return nil
}

func (r *memoryFileReferenceRepository) Delete(ctx context.Context, uid int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.refs[uid]; !ok {
		return domain.ErrFileReferenceNotFound
	}
	delete(r.refs, uid)
	return nil
}

// ScanStorage lists the files below root as references numbered in path order.
// Only files with one of the given extensions are returned.
func ScanStorage(root string, extensions []string) ([]domain.FileReference, error) {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}

	var refs []domain.FileReference
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if !allowed[ext] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		refs = append(refs, domain.FileReference{
			Identifier: filepath.ToSlash(rel),
			Name:       d.Name(),
			Extension:  ext,
			Size:       info.Size(),
			CreatedAt:  info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range refs {
		refs[i].UID = int64(i + 1)
		refs[i].Sorting = i
	}
	return refs, nil
}
