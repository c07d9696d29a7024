package main

import (
	"github.com/sirupsen/logrus"

	"github.com/karen-colon/b3-backend-social-net/internal/transport/http"
)

func main() {
	if err := http.Run(); err != nil {
		logrus.Fatalf("Server failed: %v", err)
	}
}
