package types

import "time"

type App struct {
	ID        string    `jsonapi:"primary,apps"`
	Name      string    `jsonapi:"attribute" json:"name"`
	CreatedAt time.Time `jsonapi:"attribute" json:"created-at"`
}

type AppCreateOptions struct {
	Type string `jsonapi:"primary,apps"`
	Name string `jsonapi:"attribute" json:"name"`
}

type Stage struct {
	ID        string    `jsonapi:"primary,stages"`
	AppID     string    `jsonapi:"attribute" json:"app-id"`
	Name      string    `jsonapi:"attribute" json:"name"`
	Region    string    `jsonapi:"attribute" json:"region"`
	CreatedAt time.Time `jsonapi:"attribute" json:"created-at"`
}

type StageCreateOptions struct {
	Type   string `jsonapi:"primary,stages"`
	Name   string `jsonapi:"attribute" json:"name"`
	Region string `jsonapi:"attribute" json:"region"`
}
