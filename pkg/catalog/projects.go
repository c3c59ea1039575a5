package catalog

import (
	"context"
	"time"

	"github.com/menta2k/fspy-importer/pkg/project"
)

// ProjectsKey is the key under which imported projects are listed
const ProjectsKey = "fspy"

// ProjectRecord is the persisted form of an imported project. The image
// bytes are not stored.
type ProjectRecord struct {
	Version               int32                    `json:"version"`
	CameraParameters      project.CameraParameters `json:"cameraParameters"`
	ReferenceDistanceUnit string                   `json:"referenceDistanceUnit"`
	FileName              string                   `json:"fileName"`
	ImportedAt            time.Time                `json:"importedAt"`
}

// NewRecord builds the record stored for p
func NewRecord(p *project.Project, importedAt time.Time) ProjectRecord {
	return ProjectRecord{
		Version:               p.Version,
		CameraParameters:      p.CameraParameters,
		ReferenceDistanceUnit: p.ReferenceDistanceUnit,
		FileName:              p.FileName,
		ImportedAt:            importedAt.UTC(),
	}
}

// SaveProject records p, replacing any earlier record with the same file name
func (s *Store) SaveProject(ctx context.Context, p *project.Project, importedAt time.Time) (ProjectRecord, error) {
	record := NewRecord(p, importedAt)

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := GetList[ProjectRecord](ctx, s, ProjectsKey)
	if err != nil {
		return ProjectRecord{}, err
	}
	kept := list[:0]
	for _, r := range list {
		if r.FileName != record.FileName {
			kept = append(kept, r)
		}
	}
	if err := SetList(ctx, s, ProjectsKey, append(kept, record)); err != nil {
		return ProjectRecord{}, err
	}
	return record, nil
}

// Projects returns every recorded project in import order
func (s *Store) Projects(ctx context.Context) ([]ProjectRecord, error) {
	return GetList[ProjectRecord](ctx, s, ProjectsKey)
}

// FindProject returns the record for fileName
func (s *Store) FindProject(ctx context.Context, fileName string) (ProjectRecord, bool, error) {
	list, err := s.Projects(ctx)
	if err != nil {
		return ProjectRecord{}, false, err
	}
	for _, r := range list {
		if r.FileName == fileName {
			return r, true, nil
		}
	}
	return ProjectRecord{}, false, nil
}

// ForgetProject removes the record for fileName and reports whether one existed
func (s *Store) ForgetProject(ctx context.Context, fileName string) (bool, error) {
	return RemoveFromList(ctx, s, ProjectsKey, func(r ProjectRecord) bool {
		return r.FileName == fileName
	})
}
