package main

import (
	"github.com/airenas/listreview/internal/app/review"
	"github.com/labstack/gommon/color"
)

func main() {
	printBanner()
	review.Execute()
}

var (
	version string
)

func printBanner() {
	banner := `
    ___      __ 
   / (_)____/ /_
  / / / ___/ __/
 / / (__  ) /_  
/_/_/____/\__/  
    ____             _                
   / __ \___ _   __(_)__ _      __   
  / /_/ / _ \ | / / / _ \ | /| / /   
 / _, _/  __/ |/ / /  __/ |/ |/ /    
/_/ |_|\___/|___/_/\___/|__/|__/  v: %s

%s
________________________________________________________                                                 

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("github.com/airenas/listreview"))
}
