package gqlclient_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/gqlkit/gqlclient"
)

func ExampleQuery() {
	type countriesData struct {
		Countries []struct {
			Name string `json:"name"`
		} `json:"countries"`
	}

	client := gqlclient.New("https://countries.trevorblades.com")
	data, err := gqlclient.Query[countriesData](context.Background(), client, `{ countries { name } }`)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(data.Countries))
}

func ExampleQueryWithVars() {
	type countryData struct {
		Country struct {
			Name    string `json:"name"`
			Capital string `json:"capital"`
		} `json:"country"`
	}

	client := gqlclient.New("https://countries.trevorblades.com")
	query := `query Country($code: ID!) { country(code: $code) { name capital } }`
	vars := map[string]string{"code": "SE"}

	data, err := gqlclient.QueryWithVars[countryData](context.Background(), client, query, vars)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(data.Country.Capital)
}

func ExampleNewWithHeaders() {
	client, err := gqlclient.NewWithHeaders(
		"https://api.example.com/graphql",
		map[string]string{"Authorization": "Bearer " + os.Getenv("API_TOKEN")},
	)
	if err != nil {
		log.Fatal(err)
	}

	// Decoding into json.RawMessage keeps the data payload verbatim.
	data, err := gqlclient.Query[json.RawMessage](context.Background(), client, `{ viewer { login } }`)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s\n", data)
}

func ExampleGraphQLError() {
	err := gqlclient.ErrorFromList([]gqlclient.GraphQLErrorMessage{
		{Message: `Cannot query field "namee" on type "Country".`},
	})
	fmt.Println(err.Error())
	// Output:
	// GQLClient Error: Look at json field for more details
	// Message: Cannot query field "namee" on type "Country".
}
