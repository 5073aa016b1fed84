package archive_test

import (
	"archive/tar"
	"os"
)

// writeMaliciousTar builds a tar archive containing a single entry
// whose name tries to escape the extraction directory, for
// TestUnpackRejectsPathTraversal.
func writeMaliciousTar(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tw := tar.NewWriter(f)
	defer tw.Close()

	body := []byte("payload")
	hdr := &tar.Header{
		Name:     "../../escaped.txt",
		Typeflag: tar.TypeReg,
		Size:     int64(len(body)),
		Mode:     0o600,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if _, err := tw.Write(body); err != nil {
		return err
	}
	return tw.Close()
}
