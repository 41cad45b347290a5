package jsonutil_test

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/openclimatefix/nowcasting-api/internal/jsonutil"
)

func Example() {
	type apiInfo struct {
		Title   string `json:"title"`
		Version string `json:"version"`
	}

	info := apiInfo{
		Title:   "Nowcasting API",
		Version: "0.2.27",
	}

	data, _ := jsonutil.Marshal(info)
	fmt.Println(string(data))

	var decoded apiInfo
	_ = jsonutil.Unmarshal(data, &decoded)
	fmt.Println(decoded.Version)

	buf := &bytes.Buffer{}
	_ = jsonutil.Encode(buf, info)

	var streamed apiInfo
	_ = jsonutil.Decode(buf, &streamed)
	fmt.Println(streamed.Title)

	// Output:
	// {"title":"Nowcasting API","version":"0.2.27"}
	// 0.2.27
	// Nowcasting API
}

func ExampleMarshalIndent() {
	type yield struct {
		DatetimeUTC       string  `json:"datetimeUtc"`
		SolarGenerationKW float64 `json:"solarGenerationKw"`
	}

	payload := yield{
		DatetimeUTC:       "2022-09-08T10:00:00Z",
		SolarGenerationKW: 1240.5,
	}

	data, err := jsonutil.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Println("marshal error:", err)
		return
	}

	fmt.Println(strings.TrimSpace(string(data)))

	// Output:
	// {
	//   "datetimeUtc": "2022-09-08T10:00:00Z",
	//   "solarGenerationKw": 1240.5
	// }
}
