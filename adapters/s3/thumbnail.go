package s3

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// ThumbnailBound 是商品圖片縮圖的最大邊長
const ThumbnailBound = 125

// MakeThumbnail 將圖片等比例縮小到 125x125 的範圍內並重新編碼
// 圖片本來就比上限小時不會放大，直接重新編碼
// 只支援 SecureMIMETypesExtension 中列出的格式
func MakeThumbnail(mimeType string, content []byte) ([]byte, error) {
	const op = "MakeThumbnail"

	var (
		src image.Image
		err error
	)
	switch mimeType {
	case "image/jpeg":
		src, err = jpeg.Decode(bytes.NewReader(content))
	case "image/png":
		src, err = png.Decode(bytes.NewReader(content))
	default:
		return nil, fmt.Errorf("[%s] Unsupported image type: %s", op, mimeType)
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to decode image, err=%w", op, err)
	}

	dst := src
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > ThumbnailBound || h > ThumbnailBound {
		// 等比例縮小，長邊貼齊上限
		scaledW, scaledH := ThumbnailBound, ThumbnailBound
		if w > h {
			scaledH = h * ThumbnailBound / w
		} else {
			scaledW = w * ThumbnailBound / h
		}
		if scaledW < 1 {
			scaledW = 1
		}
		if scaledH < 1 {
			scaledH = 1
		}
		scaled := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, bounds, draw.Over, nil)
		dst = scaled
	}

	var out bytes.Buffer
	switch mimeType {
	case "image/jpeg":
		err = jpeg.Encode(&out, dst, nil)
	case "image/png":
		err = png.Encode(&out, dst)
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to encode thumbnail, err=%w", op, err)
	}
	return out.Bytes(), nil
}
