// Package pypi provides an HTTP client for the Python Package Index JSON API.
//
// # Usage
//
//	client := pypi.NewClient(10*time.Second, buildinfo.UserAgent())
//	defer client.Close()
//
//	project, err := client.FetchProject(ctx, "requests")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	file, err := project.Release("2.18.4")
//	if err != nil {
//	    log.Fatal(err) // ErrVersionNotFound
//	}
//	uploaded, _ := file.UploadedAt()
//	fmt.Println(uploaded, project.IsLatest("2.18.4"))
//
// # Schema
//
// Only info.version and releases are decoded. A document without
// info.version, or one served with a non-JSON content type, is rejected.
//
// Package names are normalized following PEP 503 before being put in the URL.
package pypi
