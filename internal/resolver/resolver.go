package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/equiplend/invoice-pipeline/constants"
	"github.com/equiplend/invoice-pipeline/internal/common"
	"github.com/equiplend/invoice-pipeline/internal/entity"
	"github.com/equiplend/invoice-pipeline/internal/repository"
)

const (
	BorrowerIDPrefix  = "STU"
	IssuerIDPrefix    = "STF"
	DefaultDepartment = "General"
)

// reKeyShape is what a plausible external identifier looks like. Anything
// else placed in an id slot is treated as a name, never as a lookup key.
var reKeyShape = regexp.MustCompile(`^[A-Z]{0,4}[0-9]{4,12}$`)

var reEmailShape = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Resolver matches extracted identity clues to canonical entities, creating
// new ones when nothing matches. The check-then-create sequence is not
// transactional; the store's uniqueness constraint catches concurrent
// duplicates of the same external id.
type Resolver struct {
	store  repository.EntityStore
	logger *slog.Logger
	now    func() time.Time
}

func New(store repository.EntityStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, logger: logger, now: time.Now}
}

// Resolve looks up an entity by external id, then email, then
// case-insensitive name; the first hit wins. With no hit it mints a minimal
// new entity and marks the reference newly created.
func (r *Resolver) Resolve(ctx context.Context, kind constants.EntityKind, name, externalID, email string) (entity.EntityRef, error) {
	name = strings.TrimSpace(name)
	externalID = strings.TrimSpace(externalID)
	email = strings.TrimSpace(email)

	if externalID != "" {
		key := strings.ToUpper(strings.ReplaceAll(externalID, " ", ""))
		if KeyShaped(key) {
			ref, err := r.store.FindByExternalID(ctx, kind, key)
			if err != nil {
				return entity.EntityRef{}, err
			}
			if ref != nil {
				return *ref, nil
			}
			externalID = key
		} else {
			// a free-text value landed in the id slot; retry it as a name
			r.logger.Debug("identifier not key-shaped, retrying as name",
				"kind", kind, "value", externalID)
			ref, err := r.store.FindByName(ctx, kind, externalID)
			if err != nil {
				return entity.EntityRef{}, err
			}
			if ref != nil {
				return *ref, nil
			}
			externalID = ""
		}
	}

	if email != "" && reEmailShape.MatchString(email) {
		ref, err := r.store.FindByEmail(ctx, kind, email)
		if err != nil {
			return entity.EntityRef{}, err
		}
		if ref != nil {
			return *ref, nil
		}
	}

	if name != "" {
		ref, err := r.store.FindByName(ctx, kind, name)
		if err != nil {
			return entity.EntityRef{}, err
		}
		if ref != nil {
			return *ref, nil
		}
	}

	return r.create(ctx, kind, name, externalID, email)
}

func (r *Resolver) create(ctx context.Context, kind constants.EntityKind, name, externalID, email string) (entity.EntityRef, error) {
	if name == "" && email == "" && externalID == "" {
		return entity.EntityRef{}, fmt.Errorf("%w: no identity clues for %s", common.ErrEntityResolution, kind)
	}
	if name == "" {
		if email != "" {
			name = emailLocalPart(email)
		} else {
			name = externalID
		}
	}
	// a key-shaped id supplied by the caller is kept so later id lookups hit
	if externalID == "" {
		externalID = r.synthesizeID(kind)
	}

	ref, err := r.store.Create(ctx, kind, entity.NewEntity{
		ExternalID: externalID,
		Name:       name,
		Email:      email,
		Department: DefaultDepartment,
	})
	if err != nil {
		return entity.EntityRef{}, err
	}
	ref.NewlyCreated = true
	r.logger.Info("resolved to new entity",
		"kind", kind, "external_id", ref.ExternalID, "name", name)
	return *ref, nil
}

// synthesizeID mints PREFIX + year + 4 random digits.
func (r *Resolver) synthesizeID(kind constants.EntityKind) string {
	prefix := BorrowerIDPrefix
	if kind == constants.KindIssuer {
		prefix = IssuerIDPrefix
	}
	return fmt.Sprintf("%s%d%04d", prefix, r.now().Year(), rand.IntN(10000))
}

// KeyShaped reports whether a value looks like a valid external identifier.
func KeyShaped(s string) bool {
	return reKeyShape.MatchString(s)
}

func emailLocalPart(email string) string {
	i := strings.IndexByte(email, '@')
	if i <= 0 {
		return email
	}
	local := email[:i]
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	return strings.TrimSpace(local)
}
