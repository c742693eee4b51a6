package resolve

// API response envelopes. errno 0 means success; anything else carries an
// errmsg worth preserving as the last error.
type apiResponse struct {
	Errno  int    `json:"errno"`
	Errmsg string `json:"errmsg"`
}

type shareListResponse struct {
	apiResponse
	List []shareFile `json:"list"`
}

type shareFile struct {
	FsID           int64  `json:"fs_id"`
	ServerFilename string `json:"server_filename"`
	Size           int64  `json:"size"`
}

type shareDownloadResponse struct {
	apiResponse
	List []downloadEntry `json:"list"`
}

type downloadEntry struct {
	Dlink string `json:"dlink"`
}

type downloadRequest struct {
	ShareID    string  `json:"shareid"`
	Sign       string  `json:"sign"`
	Timestamp  string  `json:"timestamp"`
	FileIDs    []int64 `json:"file_ids"`
	Type       string  `json:"type"`
	Channel    string  `json:"channel"`
	ClientType int     `json:"clienttype"`
	Web        int     `json:"web"`
}
