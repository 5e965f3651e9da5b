package disk

import (
	"archive/zip"
	json "github.com/goccy/go-json"
	"io"
)

// Info is stored next to the encoded value in every entry file.
type Info struct {
	Key   string `json:"key"`
	Codec string `json:"codec"`
}

func readInfo(zipReader *zip.Reader) (*Info, error) {
	infoReader, err := zipReader.Open(fileInfo)
	if err != nil {
		return nil, err
	}
	defer infoReader.Close()

	var info Info

	if err := json.NewDecoder(infoReader).Decode(&info); err != nil {
		return nil, err
	}

	return &info, nil
}

func writeInfo(zipWriter *zip.Writer, info Info) error {
	infoWriter, err := zipWriter.CreateHeader(&zip.FileHeader{
		Name:   fileInfo,
		Method: zip.Store,
	})
	if err != nil {
		return err
	}

	return json.NewEncoder(infoWriter).Encode(&info)
}

func readBlob(zipReader *zip.Reader) ([]byte, error) {
	blobReader, err := zipReader.Open(fileBlob)
	if err != nil {
		return nil, err
	}
	defer blobReader.Close()

	return io.ReadAll(blobReader)
}
