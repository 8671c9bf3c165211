// Package mongo implements a catalog.Source on the MongoDB database shared
// with the catalog importer: "components", "categories" and
// "manufacturers" collections keyed by ObjectID, with components
// referencing their manufacturer and category by id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/canicai/canicai/pkg/catalog"
	apperrors "github.com/canicai/canicai/pkg/errors"
)

// Collection names.
const (
	ComponentsCollection    = "components"
	CategoriesCollection    = "categories"
	ManufacturersCollection = "manufacturers"
)

type componentDoc struct {
	ID                     primitive.ObjectID   `bson:"_id"`
	Name                   string               `bson:"name"`
	Manufacturer           primitive.ObjectID   `bson:"manufacturer,omitempty"`
	Category               primitive.ObjectID   `bson:"category,omitempty"`
	Type                   catalog.FunctionType `bson:"type"`
	Compatible             bool                 `bson:"compatible"`
	MinimalRequiredVersion string               `bson:"minimalRequiredVersion,omitempty"`
	AdditionalInfo         string               `bson:"additionalInfo,omitempty"`
}

func (d componentDoc) component() catalog.Component {
	c := catalog.Component{
		ID:                     d.ID.Hex(),
		Name:                   d.Name,
		Type:                   d.Type,
		Compatible:             d.Compatible,
		MinimalRequiredVersion: d.MinimalRequiredVersion,
		AdditionalInfo:         d.AdditionalInfo,
	}
	if !d.Manufacturer.IsZero() {
		c.Manufacturer = d.Manufacturer.Hex()
	}
	if !d.Category.IsZero() {
		c.Category = d.Category.Hex()
	}
	return c
}

type categoryDoc struct {
	ID    primitive.ObjectID     `bson:"_id"`
	Name  catalog.LocalizedName  `bson:"name"`
	Icon  string                 `bson:"icon"`
	Types []catalog.FunctionType `bson:"types,omitempty"`
}

func (d categoryDoc) category() catalog.Category {
	return catalog.Category{ID: d.ID.Hex(), Name: d.Name, Icon: d.Icon, Types: d.Types}
}

// Source reads the catalog collections of one database.
type Source struct {
	client        *mongo.Client
	components    *mongo.Collection
	categories    *mongo.Collection
	manufacturers *mongo.Collection
}

// Connect dials uri and returns a source on database db that owns the
// connection.
func Connect(ctx context.Context, uri, db string) (*Source, error) {
	if db == "" {
		return nil, fmt.Errorf("mongo: database name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	s := New(client.Database(db))
	s.client = client
	return s, nil
}

// New wraps an existing database handle. Close does not disconnect it.
func New(db *mongo.Database) *Source {
	return &Source{
		components:    db.Collection(ComponentsCollection),
		categories:    db.Collection(CategoriesCollection),
		manufacturers: db.Collection(ManufacturersCollection),
	}
}

// FetchComponentsByIDs looks up every valid ObjectID in one query. Ids that
// are malformed or unknown are reported in Missing.
func (s *Source) FetchComponentsByIDs(ctx context.Context, ids []string) (catalog.Batch, error) {
	ids = catalog.Dedupe(ids)
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}

	found := make(map[string]catalog.Component, len(oids))
	if len(oids) > 0 {
		docs, err := s.findComponents(ctx, bson.M{"_id": bson.M{"$in": oids}})
		if err != nil {
			return catalog.Batch{}, err
		}
		for _, c := range docs {
			found[c.ID] = c
		}
	}

	var b catalog.Batch
	for _, id := range ids {
		if c, ok := found[id]; ok {
			b.Components = append(b.Components, c)
		} else {
			b.Missing = append(b.Missing, id)
		}
	}
	return b, nil
}

// FetchComponentByID returns the component, or nil if absent or malformed.
func (s *Source) FetchComponentByID(ctx context.Context, id string) (*catalog.Component, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var doc componentDoc
	err = s.components.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: component %s: %w", id, err)
	}
	c := doc.component()
	return &c, nil
}

// FetchCategoryByID returns the category, or nil if absent or malformed.
func (s *Source) FetchCategoryByID(ctx context.Context, id string) (*catalog.Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var doc categoryDoc
	err = s.categories.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: category %s: %w", id, err)
	}
	c := doc.category()
	return &c, nil
}

// Categories returns every category ordered by id.
func (s *Source) Categories(ctx context.Context) ([]catalog.Category, error) {
	cur, err := s.categories.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo: categories: %w", err)
	}
	var docs []categoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: categories: %w", err)
	}
	out := make([]catalog.Category, len(docs))
	for i, d := range docs {
		out[i] = d.category()
	}
	return out, nil
}

// ComponentsInCategory returns the components of a category sorted by name.
func (s *Source) ComponentsInCategory(ctx context.Context, categoryID string) ([]catalog.Component, error) {
	oid, err := primitive.ObjectIDFromHex(categoryID)
	if err != nil {
		return nil, nil
	}
	return s.findComponents(ctx, bson.M{"category": oid})
}

// Search matches words against component names and manufacturer names.
func (s *Source) Search(ctx context.Context, q catalog.Query) ([]catalog.Component, error) {
	names := nameFilter(q.Words())
	if names == nil {
		return nil, nil
	}

	cur, err := s.manufacturers.Find(ctx, names, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("mongo: search manufacturers: %w", err)
	}
	var makers []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &makers); err != nil {
		return nil, fmt.Errorf("mongo: search manufacturers: %w", err)
	}
	makerIDs := make([]primitive.ObjectID, len(makers))
	for i, m := range makers {
		makerIDs[i] = m.ID
	}

	filter := bson.M{"$or": bson.A{bson.M{"manufacturer": bson.M{"$in": makerIDs}}, names}}
	if len(q.Types) > 0 {
		filter = bson.M{"$and": bson.A{filter, bson.M{"type": bson.M{"$in": q.Types}}}}
	}
	return s.findComponents(ctx, filter)
}

// nameFilter ORs a case-insensitive substring match per word.
func nameFilter(words []string) bson.M {
	if len(words) == 0 {
		return nil
	}
	or := make(bson.A, len(words))
	for i, w := range words {
		or[i] = bson.M{"name": primitive.Regex{Pattern: regexp.QuoteMeta(w), Options: "i"}}
	}
	return bson.M{"$or": or}
}

func (s *Source) findComponents(ctx context.Context, filter any) ([]catalog.Component, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.components.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find components: %w", err)
	}
	var docs []componentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode components: %w", err)
	}
	out := make([]catalog.Component, len(docs))
	for i, d := range docs {
		out[i] = d.component()
	}
	return out, nil
}

// Close disconnects the client if the source opened it.
func (s *Source) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

var _ catalog.Source = (*Source)(nil)

// CheckIDs reports the first id or reference in f that is not an ObjectID
// hex string. Import calls it before writing anything.
func CheckIDs(f catalog.File) error {
	for _, m := range f.Manufacturers {
		if err := apperrors.ValidateObjectID(m.ID); err != nil {
			return fmt.Errorf("manufacturer: %w", err)
		}
	}
	for _, c := range f.Categories {
		if err := apperrors.ValidateObjectID(c.ID); err != nil {
			return fmt.Errorf("category: %w", err)
		}
	}
	for _, c := range f.Components {
		refs := []string{c.ID, c.Category}
		if c.Manufacturer != "" {
			refs = append(refs, c.Manufacturer)
		}
		for _, id := range refs {
			if err := apperrors.ValidateObjectID(id); err != nil {
				return fmt.Errorf("component %s: %w", c.Name, err)
			}
		}
	}
	return nil
}

// Import upserts every record of f. All ids must be ObjectID hex strings.
func (s *Source) Import(ctx context.Context, f catalog.File) error {
	if err := CheckIDs(f); err != nil {
		return err
	}
	upsert := options.Replace().SetUpsert(true)
	for _, m := range f.Manufacturers {
		oid, err := primitive.ObjectIDFromHex(m.ID)
		if err != nil {
			return fmt.Errorf("manufacturer %q: %w", m.ID, err)
		}
		doc := bson.M{"_id": oid, "name": m.Name}
		if _, err := s.manufacturers.ReplaceOne(ctx, bson.M{"_id": oid}, doc, upsert); err != nil {
			return fmt.Errorf("mongo: import manufacturer %s: %w", m.ID, err)
		}
	}
	for _, c := range f.Categories {
		oid, err := primitive.ObjectIDFromHex(c.ID)
		if err != nil {
			return fmt.Errorf("category %q: %w", c.ID, err)
		}
		doc := categoryDoc{ID: oid, Name: c.Name, Icon: c.Icon, Types: c.Types}
		if _, err := s.categories.ReplaceOne(ctx, bson.M{"_id": oid}, doc, upsert); err != nil {
			return fmt.Errorf("mongo: import category %s: %w", c.ID, err)
		}
	}
	for _, c := range f.Components {
		doc, err := toDoc(c)
		if err != nil {
			return err
		}
		if _, err := s.components.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, upsert); err != nil {
			return fmt.Errorf("mongo: import component %s: %w", c.ID, err)
		}
	}
	return nil
}

func toDoc(c catalog.Component) (componentDoc, error) {
	doc := componentDoc{
		Name:                   c.Name,
		Type:                   c.Type,
		Compatible:             c.Compatible,
		MinimalRequiredVersion: c.MinimalRequiredVersion,
		AdditionalInfo:         c.AdditionalInfo,
	}
	var err error
	if doc.ID, err = primitive.ObjectIDFromHex(c.ID); err != nil {
		return doc, fmt.Errorf("component %q: %w", c.ID, err)
	}
	if c.Manufacturer != "" {
		if doc.Manufacturer, err = primitive.ObjectIDFromHex(c.Manufacturer); err != nil {
			return doc, fmt.Errorf("component %s manufacturer %q: %w", c.ID, c.Manufacturer, err)
		}
	}
	if doc.Category, err = primitive.ObjectIDFromHex(c.Category); err != nil {
		return doc, fmt.Errorf("component %s category %q: %w", c.ID, c.Category, err)
	}
	return doc, nil
}
