package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	Price         float64            `bson:"price" json:"price"`
	OriginalPrice float64            `bson:"original_price,omitempty" json:"original_price,omitempty"`
	Category      string             `bson:"category" json:"category"`
	Collection    string             `bson:"collection" json:"collection"`
	Images        []string           `bson:"images" json:"images"`
	Stock         int                `bson:"stock" json:"stock"`
	IsNew         bool               `bson:"is_new" json:"is_new"`
	IsSale        bool               `bson:"is_sale" json:"is_sale"`
	Scent         string             `bson:"scent,omitempty" json:"scent,omitempty"`
	BurnTime      string             `bson:"burn_time,omitempty" json:"burn_time,omitempty"`
	Size          string             `bson:"size,omitempty" json:"size,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
