package validators

import "go.mongodb.org/mongo-driver/bson"

var ListingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"provider_id",
			"title",
			"category",
			"hourly_rate",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"provider_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 120,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 4000,
			},

			"category": bson.M{
				"bsonType": "string",
				"enum": []string{
					"tutoring",
					"moving",
					"tech-support",
					"cleaning",
					"design",
					"photography",
					"other",
				},
			},

			"hourly_rate": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
				"maximum":  10000,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"active", "deleted"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
