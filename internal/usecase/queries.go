package usecase

import (
	"propdesk-service/internal/domain/record"
	"propdesk-service/internal/livequery"

	"go.mongodb.org/mongo-driver/bson"
)

// Live queries used by the feeds. Every one is scoped to a single property.

func propertyQuery(propertyID string) livequery.Query {
	return livequery.Query{
		Collection: record.Properties,
		Scope:      bson.D{{Key: "_id", Value: propertyID}},
		Limit:      1,
	}
}

func visitsQuery(propertyID string, limit int) livequery.Query {
	return livequery.Query{
		Collection: record.Visits,
		Scope:      bson.D{{Key: "propertyId", Value: propertyID}},
		Sort:       []livequery.SortField{{Field: "createdAt", Dir: livequery.Desc}},
		Limit:      limit,
	}
}

func amenitiesQuery(propertyID string) livequery.Query {
	return livequery.Query{
		Collection: record.Amenities,
		Scope:      bson.D{{Key: "propertyId", Value: propertyID}},
		Sort:       []livequery.SortField{{Field: "name", Dir: livequery.Asc}},
	}
}

func bookingsQuery(propertyID, amenityID string) livequery.Query {
	return livequery.Query{
		Collection: record.Bookings,
		Scope: bson.D{
			{Key: "propertyId", Value: propertyID},
			{Key: "amenityId", Value: amenityID},
		},
		Sort: []livequery.SortField{{Field: "createdAt", Dir: livequery.Desc}},
	}
}

func unitsQuery(propertyID string) livequery.Query {
	return livequery.Query{
		Collection: record.Units,
		Scope:      bson.D{{Key: "propertyId", Value: propertyID}},
		Sort:       []livequery.SortField{{Field: "unitLabel", Dir: livequery.Asc}},
	}
}

func eventsQuery(propertyID string) livequery.Query {
	return livequery.Query{
		Collection: record.Events,
		Scope:      bson.D{{Key: "propertyId", Value: propertyID}},
		Sort:       []livequery.SortField{{Field: "startAt", Dir: livequery.Asc}},
	}
}
