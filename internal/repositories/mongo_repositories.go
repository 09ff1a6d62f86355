package repositories

import (
	"context"
	"time"

	"foodify-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Dish Repository

type dishRepository struct {
	collection *mongo.Collection
}

func NewDishRepository(db *mongo.Database) DishRepository {
	return &dishRepository{
		collection: db.Collection("dishes"),
	}
}

func (r *dishRepository) Create(ctx context.Context, dish *models.Dish) error {
	dish.CreatedAt = time.Now()
	dish.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, dish)
	if err != nil {
		return err
	}
	dish.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *dishRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Dish, error) {
	var dish models.Dish
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&dish)
	if err != nil {
		return nil, err
	}
	return &dish, nil
}

func (r *dishRepository) Update(ctx context.Context, dish *models.Dish) error {
	dish.UpdatedAt = time.Now()

	filter := bson.M{"_id": dish.ID}
	update := bson.M{"$set": dish}

	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

func (r *dishRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *dishRepository) GetAll(ctx context.Context, limit, offset int) ([]models.Dish, error) {
	var dishes []models.Dish

	filter := bson.M{"is_available": true}
	opts := options.Find().SetLimit(int64(limit)).SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &dishes); err != nil {
		return nil, err
	}

	return dishes, nil
}

func (r *dishRepository) GetByRestaurantID(ctx context.Context, restaurantID string, limit, offset int) ([]models.Dish, error) {
	var dishes []models.Dish

	filter := bson.M{"restaurant_id": restaurantID, "is_available": true}
	opts := options.Find().SetLimit(int64(limit)).SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &dishes); err != nil {
		return nil, err
	}

	return dishes, nil
}

func (r *dishRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.Dish, error) {
	var dishes []models.Dish

	filter := bson.M{
		"is_available": true,
		"$or": []bson.M{
			{"name": bson.M{"$regex": query, "$options": "i"}},
			{"description": bson.M{"$regex": query, "$options": "i"}},
			{"tags": bson.M{"$in": []string{query}}},
		},
	}

	opts := options.Find().SetLimit(int64(limit)).SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &dishes); err != nil {
		return nil, err
	}

	return dishes, nil
}

// Dish Category Repository

type dishCategoryRepository struct {
	collection *mongo.Collection
}

func NewDishCategoryRepository(db *mongo.Database) DishCategoryRepository {
	return &dishCategoryRepository{
		collection: db.Collection("dish_categories"),
	}
}

func (r *dishCategoryRepository) Create(ctx context.Context, category *models.DishCategory) error {
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, category)
	if err != nil {
		return err
	}
	category.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *dishCategoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.DishCategory, error) {
	var category models.DishCategory
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *dishCategoryRepository) Update(ctx context.Context, category *models.DishCategory) error {
	category.UpdatedAt = time.Now()

	filter := bson.M{"_id": category.ID}
	update := bson.M{"$set": category}

	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

func (r *dishCategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *dishCategoryRepository) GetActive(ctx context.Context) ([]models.DishCategory, error) {
	var categories []models.DishCategory

	opts := options.Find().SetSort(bson.M{"sort_order": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &categories); err != nil {
		return nil, err
	}

	return categories, nil
}
