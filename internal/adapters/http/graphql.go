package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

func pointArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
	}
}

func argPoint(p graphql.ResolveParams) domain.GeoPoint {
	return domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
}

// buildSchema creates the GraphQL schema wired to our services. Fields
// resolve through the json tags of the domain types.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	roadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Road",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"coordinates": &graphql.Field{Type: graphql.NewList(geoPointType)},
			"condition":   &graphql.Field{Type: graphql.Float},
			"polyline":    &graphql.Field{Type: graphql.String},
		},
	})

	nearbyRoadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearbyRoad",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"coordinates":     &graphql.Field{Type: graphql.NewList(geoPointType)},
			"condition":       &graphql.Field{Type: graphql.Float},
			"distance_meters": &graphql.Field{Type: graphql.Float},
		},
	})

	cityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "City",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"center":   &graphql.Field{Type: geoPointType},
			"road_ids": &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"roadsInView": &graphql.Field{
				Type:        graphql.NewList(roadType),
				Description: "Roads of every city around a location",
				Args:        pointArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Roads.RoadsInView(p.Context, argPoint(p))
				},
			},
			"nearestRoads": &graphql.Field{
				Type:        graphql.NewList(nearbyRoadType),
				Description: "Roads around a location, closest first",
				Args: graphql.FieldConfigArgument{
					"lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Roads.NearestRoads(p.Context, argPoint(p), p.Args["limit"].(int))
				},
			},
			"matchRoads": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "IDs of the roads a location is on",
				Args:        pointArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Roads.MatchRoads(p.Context, argPoint(p))
				},
			},
			"city": &graphql.Field{
				Type:        cityType,
				Description: "Get a city by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Cities.GetCity(p.Context, p.Args["id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
