package main

import "github.com/Abhishek2010dev/vesta"

func main() {
	v := vesta.New()
	v.Get("/", func(ctx *vesta.Context) error {
		return ctx.SendJSON(map[string]string{"message": "Hello, World"})
	})
	v.Get("/users/{id}", func(ctx *vesta.Context) error {
		return ctx.SendString("user " + ctx.Param("id"))
	})
	v.Get("/static/{*path}", func(ctx *vesta.Context) error {
		return ctx.SendString("serving " + ctx.Param("path"))
	})
	v.Run(":3000")
}
