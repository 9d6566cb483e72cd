package store

import (
	"github.com/google/uuid"
	"github.com/lexiflow/lexiflow/internal/domain"
)

// SchemaVersion identifies the persisted snapshot shape. Schema evolution is
// handled by an external migration step before a snapshot reaches the store;
// the store only assumes the current shape post-migration.
const SchemaVersion = 1

// Snapshot is the full persisted state document, and doubles as the import
// payload (in which case any subset of fields may be present).
type Snapshot struct {
	SchemaVersion int `json:"schema_version"`

	Words      map[string]*domain.Word       `json:"words,omitempty"`
	Categories map[string]*domain.Category   `json:"categories,omitempty"`
	Reviews    map[string]*domain.ReviewItem `json:"reviews,omitempty"`

	// Settings is a patch rather than a full struct so a partial import
	// payload merges field-by-field instead of zeroing omitted fields.
	// Export fills every field.
	Settings *domain.SettingsPatch `json:"settings,omitempty"`

	ProcessingQueue    []string `json:"processing_queue,omitempty"`
	SelectedCategories []string `json:"selected_category_ids,omitempty"`
	CategoryOrder      []string `json:"category_order,omitempty"`
}

// ExportOptions controls snapshot export.
type ExportOptions struct {
	// ExcludeCredentials omits the API key from the exported settings, for
	// snapshots that leave the machine. Importing such a snapshot keeps the
	// receiving store's own key.
	ExcludeCredentials bool
}

// ExportSnapshot returns a versioned copy of the full store state.
func (s *Store) ExportSnapshot(opts ExportOptions) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{
		SchemaVersion:      SchemaVersion,
		Words:              make(map[string]*domain.Word, len(s.words)),
		Categories:         make(map[string]*domain.Category, len(s.categories)),
		Reviews:            make(map[string]*domain.ReviewItem, len(s.reviews)),
		ProcessingQueue:    append([]string(nil), s.pendingQueue...),
		SelectedCategories: append([]string(nil), s.selectedCategories...),
		CategoryOrder:      make([]string, 0, len(s.categoryOrder)),
	}

	for id, w := range s.words {
		snap.Words[id.String()] = cloneWord(w)
	}
	for id, c := range s.categories {
		cp := *c
		snap.Categories[id.String()] = &cp
	}
	for id, r := range s.reviews {
		snap.Reviews[id.String()] = r.Clone()
	}
	for _, id := range s.categoryOrder {
		snap.CategoryOrder = append(snap.CategoryOrder, id.String())
	}

	snap.Settings = settingsAsPatch(s.settings, opts.ExcludeCredentials)

	return snap
}

// settingsAsPatch converts the full settings struct into a patch with every
// field present, except the API key when credentials are excluded.
func settingsAsPatch(settings domain.Settings, excludeCredentials bool) *domain.SettingsPatch {
	patch := &domain.SettingsPatch{
		Provider:         &settings.Provider,
		BaseURL:          &settings.BaseURL,
		ModelName:        &settings.ModelName,
		ConcurrencyLimit: &settings.ConcurrencyLimit,
		UseCustomPrompts: &settings.UseCustomPrompts,
		Prompts:          settings.Prompts,
		Theme:            &settings.Theme,
	}
	if !excludeCredentials {
		patch.APIKey = &settings.APIKey
	}
	return patch
}

// ImportData merges a partial snapshot into the store. Entries merge by key
// and imported entries win on ID collision; existing entries absent from the
// payload are kept. Category display order is unioned (new IDs appended, no
// duplicates). The selection and pending queue are replaced only when the
// payload provides them. Settings shallow-merge: fields present in the
// payload overwrite, omitted fields keep their current values. The active
// set is untouched: in-flight enrichment calls are real work this process
// owns.
func (s *Store) ImportData(snap *Snapshot) error {
	if snap == nil {
		return nil
	}

	s.mu.Lock()

	// Settings merge first: an invalid patch rejects the whole import
	// before anything else changes.
	if snap.Settings != nil {
		if err := s.settings.Apply(*snap.Settings); err != nil {
			s.mu.Unlock()
			return err
		}
	}

	for key, w := range snap.Words {
		id, err := uuid.Parse(key)
		if err != nil || w == nil {
			continue
		}
		w.ID = id
		s.words[id] = cloneWord(w)
	}

	for key, c := range snap.Categories {
		id, err := uuid.Parse(key)
		if err != nil || c == nil {
			continue
		}
		cp := *c
		cp.ID = id
		s.categories[id] = &cp
	}

	for key, r := range snap.Reviews {
		id, err := uuid.Parse(key)
		if err != nil || r == nil {
			continue
		}
		item := r.Clone()
		item.WordID = id
		s.reviews[id] = item
	}

	if len(snap.CategoryOrder) > 0 {
		present := make(map[uuid.UUID]bool, len(s.categoryOrder))
		for _, id := range s.categoryOrder {
			present[id] = true
		}
		for _, key := range snap.CategoryOrder {
			id, err := uuid.Parse(key)
			if err != nil || present[id] {
				continue
			}
			s.categoryOrder = append(s.categoryOrder, id)
			present[id] = true
		}
	}

	if len(snap.SelectedCategories) > 0 {
		s.selectedCategories = append([]string(nil), snap.SelectedCategories...)
	}

	if snap.ProcessingQueue != nil {
		s.pendingQueue = append([]string(nil), snap.ProcessingQueue...)
	}

	s.mu.Unlock()

	s.logger.Info("data imported",
		"words", len(snap.Words),
		"categories", len(snap.Categories),
		"reviews", len(snap.Reviews))
	s.notify()
	return nil
}
