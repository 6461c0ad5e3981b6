package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/storage"
)

func (g *Gateway) findIdentity(ctx context.Context, op string, filter bson.M) (*identity.Identity, error) {
	var doc identityDocument
	err := g.identities.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, storage.Wrap(op, err)
	}
	i := doc.toEntity()
	return &i, nil
}

// GetIdentity implements identity.IdentityRepository.
func (g *Gateway) GetIdentity(ctx context.Context, id int64) (*identity.Identity, error) {
	return g.findIdentity(ctx, "get identity", bson.M{"_id": id})
}

// GetIdentityByCPF implements identity.IdentityRepository.
func (g *Gateway) GetIdentityByCPF(ctx context.Context, cpf string) (*identity.Identity, error) {
	return g.findIdentity(ctx, "get identity by cpf", bson.M{"cpf": cpf})
}

// GetAdminIdentity implements identity.IdentityRepository.
func (g *Gateway) GetAdminIdentity(ctx context.Context) (*identity.Identity, error) {
	return g.findIdentity(ctx, "get admin identity", bson.M{"role": string(identity.RoleAdmin)})
}

// ListEmployees implements identity.IdentityRepository.
func (g *Gateway) ListEmployees(ctx context.Context) ([]identity.Identity, error) {
	cursor, err := g.identities.Find(ctx,
		bson.M{"role": string(identity.RoleEmployee)},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, storage.Wrap("list employees", err)
	}

	var docs []identityDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storage.Wrap("list employees", err)
	}

	employees := make([]identity.Identity, 0, len(docs))
	for _, d := range docs {
		employees = append(employees, d.toEntity())
	}
	return employees, nil
}

// viewsByID loads the identity views for a batch of ids in one query.
func (g *Gateway) viewsByID(ctx context.Context, ids []int64) (map[int64]*identity.View, error) {
	views := make(map[int64]*identity.View, len(ids))
	if len(ids) == 0 {
		return views, nil
	}

	cursor, err := g.identities.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, storage.Wrap("load identity views", err)
	}
	var docs []identityDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storage.Wrap("load identity views", err)
	}
	for _, d := range docs {
		i := d.toEntity()
		views[i.ID] = i.View()
	}
	return views, nil
}

func (g *Gateway) identityExists(ctx context.Context, id int64) (bool, error) {
	n, err := g.identities.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, storage.Wrap("check identity", err)
	}
	return n > 0, nil
}

// CreateIdentity implements identity.IdentityRepository.
func (g *Gateway) CreateIdentity(ctx context.Context, i identity.Identity) (identity.Identity, error) {
	existing, err := g.GetIdentityByCPF(ctx, i.CPF)
	if err != nil {
		return identity.Identity{}, err
	}
	if existing != nil {
		return identity.Identity{}, identity.ErrCPFExists
	}

	id, err := g.nextID(ctx, identitiesCollection)
	if err != nil {
		return identity.Identity{}, err
	}
	i.ID = id
	i.CreatedAt = now()

	if _, err := g.identities.InsertOne(ctx, newIdentityDocument(i)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return identity.Identity{}, identity.ErrCPFExists
		}
		return identity.Identity{}, storage.Wrap("create identity", err)
	}
	return i, nil
}

// UpdateIdentity implements identity.IdentityRepository.
func (g *Gateway) UpdateIdentity(ctx context.Context, id int64, patch identity.Patch) (identity.Identity, error) {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.PasswordHash != nil {
		set["password_hash"] = *patch.PasswordHash
	}
	if patch.Role != nil {
		set["role"] = string(*patch.Role)
	}
	if patch.Active != nil {
		set["active"] = *patch.Active
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.BirthDate != nil {
		set["birth_date"] = *patch.BirthDate
	}
	if patch.StartDate != nil {
		set["start_date"] = *patch.StartDate
	}
	if patch.WeeklyHours != nil {
		set["weekly_hours"] = *patch.WeeklyHours
	}
	if patch.ContractType != nil {
		set["contract_type"] = *patch.ContractType
	}
	if patch.MustResetPassword != nil {
		set["must_reset_password"] = *patch.MustResetPassword
	}

	if len(set) == 0 {
		current, err := g.GetIdentity(ctx, id)
		if err != nil {
			return identity.Identity{}, err
		}
		if current == nil {
			return identity.Identity{}, identity.ErrIdentityNotFound
		}
		return *current, nil
	}

	var doc identityDocument
	err := g.identities.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return identity.Identity{}, identity.ErrIdentityNotFound
		}
		return identity.Identity{}, storage.Wrap("update identity", err)
	}
	return doc.toEntity(), nil
}
