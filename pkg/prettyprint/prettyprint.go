package prettyprint

import (
	"encoding/json"
	"fmt"
)

func Sprint(b any) string {
	s, _ := json.MarshalIndent(b, "", "\t")
	return string(s)
}

func Print(b any) {
	fmt.Print(Sprint(b))
}
