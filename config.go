package main

import (
	"fmt"
	"os"
)

const (
	apiBaseURLVarname     = "SHOP_API_URL"
	originVarname         = "SHOP_ORIGIN"
	merchantTokenVarname  = "SHOP_MERCHANT_TOKEN"
	merchantAuthIDVarname = "SHOP_MERCHANT_AUTHID"
)

type config struct {
	apiBaseURL     string
	origin         string
	merchantToken  string
	merchantAuthID string
}

func readConfig() (config, error) {
	cfg := config{
		apiBaseURL:     os.Getenv(apiBaseURLVarname),
		origin:         os.Getenv(originVarname),
		merchantToken:  os.Getenv(merchantTokenVarname),
		merchantAuthID: os.Getenv(merchantAuthIDVarname),
	}

	for varname, value := range map[string]string{
		apiBaseURLVarname:     cfg.apiBaseURL,
		originVarname:         cfg.origin,
		merchantTokenVarname:  cfg.merchantToken,
		merchantAuthIDVarname: cfg.merchantAuthID,
	} {
		if value == "" {
			return config{}, fmt.Errorf("missing env-var %s", varname)
		}
	}

	return cfg, nil
}
